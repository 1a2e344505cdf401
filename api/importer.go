package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"todo-api/domain"
)

// DefaultImportURL is the upstream todo collection fetched by ImportAll.
const DefaultImportURL = "https://jsonplaceholder.typicode.com/todos/"

// FetchError reports a non-success response from the upstream todo source.
// The status code is surfaced to the API caller unchanged.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Importer fetches the upstream todo collection and stores items whose ids
// are not present yet. The fetch is a blocking call on the request path.
type Importer struct {
	client *http.Client
	url    string
	store  Storage
}

// NewImporter creates an Importer. A nil client falls back to
// http.DefaultClient and an empty url to DefaultImportURL.
func NewImporter(client *http.Client, url string, store Storage) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultImportURL
	}
	return &Importer{client: client, url: url, store: store}
}

// ImportAll fetches every upstream todo and inserts the new ones, returning
// the count of inserted rows. Re-running it with the same upstream data is a
// no-op.
func (i *Importer) ImportAll(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &FetchError{StatusCode: resp.StatusCode}
	}

	var todos []domain.Todo
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return 0, fmt.Errorf("decode upstream todos: %w", err)
	}
	return i.store.ImportTodos(ctx, todos)
}
