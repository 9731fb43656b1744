package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestWriteDeduplicatesNames(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []Entry{
		{Name: "receipt.pdf", Modified: time.Now(), Data: []byte("one")},
		{Name: "receipt.pdf", Modified: time.Now(), Data: []byte("two")},
		{Name: "../../etc/passwd", Data: []byte("three")},
	})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	want := []string{"receipt.pdf", "receipt-2.pdf", "etc/passwd"}
	if len(zr.File) != len(want) {
		t.Fatalf("got %d files", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Fatalf("file %d = %q, want %q", i, f.Name, want[i])
		}
	}
	rc, _ := zr.File[1].Open()
	defer rc.Close()
	if b, _ := io.ReadAll(rc); string(b) != "two" {
		t.Fatalf("second entry = %q", b)
	}
}
