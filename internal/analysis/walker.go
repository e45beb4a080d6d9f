package analysis

import (
	"fmt"

	"unalias/internal/document"
)

// WalkSelectorRef checks that addr is a cell of the selector-reference
// section and returns the first address it refers to inside the method-name
// section. Reference order is significant; the first match wins.
func WalkSelectorRef(doc document.Document, addr uint64) (uint64, error) {
	sec := doc.SectionAtAddress(addr)
	if sec == nil {
		return 0, newError(KindNotASelectorRef, addr, fmt.Errorf("address is not in any section"))
	}
	if sec.Name != document.SelRefsSection {
		return 0, newError(KindNotASelectorRef, addr, fmt.Errorf("address is in %s", sec))
	}

	refs := doc.ReferencesFrom(addr)
	if len(refs) == 0 {
		return 0, newError(KindNoSelectorName, addr, fmt.Errorf("no references from selector cell"))
	}
	for _, ref := range refs {
		if s := doc.SectionAtAddress(ref); s != nil && s.Name == document.MethNameSection {
			return ref, nil
		}
	}
	return 0, newError(KindNoSelectorName, addr, fmt.Errorf("none of %d references lie in %s", len(refs), document.MethNameSection))
}
