package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCSV(t *testing.T) {
	in := "name,title,company\nDr. John Smith,Director of Toxicology,Pfizer\nDr. Emily Watson,VP Preclinical,Genentech\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(in), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"name", "title", "company"}, <-headerCh)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dr. John Smith", rows[0][0])
	assert.Equal(t, "VP Preclinical", rows[1][1])
}

func TestStreamCSV_NoHeader(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a,b\nc,d\n"), CSVOptions{})

	var n int
	for range rowCh {
		n++
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, 2, n)
}

func TestStreamCSV_VariableFields(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a,b,c\nd\n"), CSVOptions{})
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 1)
}
