package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteInventoriesXLSX(t *testing.T) {
	var buf bytes.Buffer
	rows := sampleInventories()
	err := WriteInventoriesXLSX(&buf, rows, func(id int) bool { return id == 9 })
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())
	got, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, got, len(rows)+1)
	assert.Equal(t, exportHeaders, got[0])
	assert.Equal(t, "7", got[2][0])
	assert.Equal(t, "desk", got[2][13])
	assert.Equal(t, "FALSE", got[2][14])
	assert.Equal(t, "TRUE", got[3][14])
	assert.Equal(t, "TRUE", got[4][14])
}
