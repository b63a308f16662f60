package parse

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/extract"
	"sof-backend/internal/shared/storage/object/local"
)

func TestStoreExtractorSavesDerivedText(t *testing.T) {
	client := newTestClient(t)
	store := local.New(t.TempDir())

	key, _, _, err := store.Save(context.Background(), "sof", "sof.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)

	httpmock.RegisterResponder(http.MethodPost, "https://parser.example/v1/parse",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"text": "NOR tendered 06:00",
		}))

	text, err := StoreExtractor{Client: client}.ExtractText(context.Background(), store, key, "application/pdf", "sof.pdf")
	require.NoError(t, err)
	assert.Equal(t, "NOR tendered 06:00", text)

	derived, err := store.Open(context.Background(), key+".extracted.txt")
	require.NoError(t, err)
	derived.Close()
}

func TestStoreExtractorMarksParseFailures(t *testing.T) {
	client := newTestClient(t)
	store := local.New(t.TempDir())

	key, _, _, err := store.Save(context.Background(), "sof", "sof.pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)

	httpmock.RegisterResponder(http.MethodPost, "https://parser.example/v1/parse",
		httpmock.NewStringResponder(http.StatusBadGateway, "<html>gateway error</html>"))

	_, err = StoreExtractor{Client: client}.ExtractText(context.Background(), store, key, "application/pdf", "sof.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrExtractionFailed)
}
