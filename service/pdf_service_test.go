package service

import (
	"path/filepath"
	"testing"

	"github.com/ragkit/indexer-be/types"
	"github.com/stretchr/testify/assert"
)

func TestLoad_SourceNotFound(t *testing.T) {
	loader := NewPDFService()

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.pdf"), types.IngestRequest{})
	assert.ErrorIs(t, err, types.ErrSourceNotFound)
}

func TestGetFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "report", GetFileNameWithoutExt("/data/docs/report.pdf"))
	assert.Equal(t, "report", GetFileNameWithoutExt("report.pdf"))
	assert.Equal(t, "report", GetFileNameWithoutExt("report"))
	assert.Equal(t, "archive.v2", GetFileNameWithoutExt("archive.v2.pdf"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", cleanText("  hello\x00 world\r "))
	assert.Equal(t, "page one\npage two", cleanText("page one\fpage two"))
	assert.Equal(t, "", cleanText("   "))
}
