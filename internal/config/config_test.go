package config

import "testing"

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: Config{LogLevel: "info", LogPrefix: "unalias ", Prefix: "ALIAS__", Segment: "__TEXT"},
		},
		{
			name: "overrides",
			env: map[string]string{
				"UNALIAS_LOG_LEVEL":   "DEBUG",
				"UNALIAS_LOG_TO_FILE": "true",
				"UNALIAS_NO_COLOR":    "1",
				"UNALIAS_PREFIX":      "STUB_",
				"UNALIAS_SEGMENT":     "__TEXT_EXEC",
				"UNALIAS_ARCH":        "arm64e",
			},
			want: Config{
				LogLevel:  "debug",
				LogPrefix: "unalias ",
				LogToFile: true,
				NoColor:   true,
				Prefix:    "STUB_",
				Segment:   "__TEXT_EXEC",
				Arch:      "arm64e",
			},
		},
		{
			name:    "bad level",
			env:     map[string]string{"UNALIAS_LOG_LEVEL": "chatty"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			env:     map[string]string{"UNALIAS_PROFILE": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadFrom(tt.env)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFrom() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFrom failed: %v", err)
			}
			if *got != tt.want {
				t.Errorf("LoadFrom() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	c := Config{LogLevel: "", Prefix: "ALIAS__", Segment: "__TEXT"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.LogLevel != "info" || c.Debug() {
		t.Errorf("empty level normalized to %q", c.LogLevel)
	}

	for _, c := range []Config{
		{LogLevel: "info", Segment: "__TEXT"},
		{LogLevel: "info", Prefix: "ALIAS__"},
	} {
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v) succeeded", c)
		}
	}
}
