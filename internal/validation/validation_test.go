package validation

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

// pngHeader is the 8 byte PNG signature followed by an IHDR chunk start.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestDetectFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     string
		wantErr  bool
	}{
		{name: "png", filename: "proof.png", content: pngHeader, want: "image/png"},
		{name: "pdf receipt", filename: "receipt.pdf", content: []byte("%PDF-1.7\n"), want: "application/pdf"},
		{name: "text renamed to png", filename: "proof.png", content: []byte("hello"), wantErr: true},
		{name: "png with wrong extension", filename: "proof.exe", content: pngHeader, wantErr: true},
		{name: "empty", filename: "proof.png", content: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := fileHeader(t, tt.filename, tt.content)
			got, err := DetectFile(header, ImageConstraints, ReceiptConstraints)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DetectFile accepted %s", tt.filename)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("DetectFile = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Donor@Example.COM "); got != "donor@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"donor@example.com", "a.b+c@shelter.org"} {
		if err := ValidateEmail(ok); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "nope", "Donor <donor@example.com>", strings.Repeat("a", 250) + "@x.io"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{password: "short", want: ErrPasswordTooShort},
		{password: strings.Repeat("x", 73), want: ErrPasswordTooLong},
		{password: "MyPassword2024!", want: ErrPasswordCommon},
		{password: "purring-tabby-on-a-windowsill", want: nil},
	}

	for _, tt := range tests {
		if err := ValidatePassword(tt.password); !errors.Is(err, tt.want) {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.want)
		}
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("name", "  ", 100); err == nil {
		t.Fatal("blank name accepted")
	}
	if err := ValidateText("title", strings.Repeat("é", 201), 200); err == nil {
		t.Fatal("overlong title accepted")
	}
	if err := ValidateText("name", "Biscuit", 100); err != nil {
		t.Fatalf("ValidateText = %v", err)
	}
}
