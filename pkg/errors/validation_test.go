package errors

import (
	"testing"
)

func TestValidateDocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"storyboard", "Main.storyboard", false},
		{"nested storyboard", "App/Base.lproj/Main.storyboard", false},
		{"upper-case extension", "Main.STORYBOARD", false},
		{"xml export", "flow.xml", false},

		{"empty", "", true},
		{"wrong extension", "Main.xib", true},
		{"no extension", "Main", true},
		{"null byte", "Main\x00.storyboard", true},
		{"newline", "Main\n.storyboard", true},
		{"too long", string(make([]byte, 5000)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateDocumentPath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means default", "", false},
		{"relative", "out/graph", false},
		{"absolute", "/tmp/graph", false},
		{"directory", "out/", true},
		{"control char", "out\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
