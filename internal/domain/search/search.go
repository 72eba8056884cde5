package search

import (
	"context"
	"errors"
	"path"

	"github.com/blevesearch/bleve/v2"
	"github.com/campus-events/backend/pkg/logger"
	"github.com/campus-events/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

const EventDoc = "event"

type EventData struct {
	Title       string
	Description string
	Venue       string
}

type Index interface {
	IndexEvent(id string, data EventData) error
	DeleteEvent(id string) error
	SearchEvent(query string, offset, limit int) ([]string, error)
	Close()
}

type bleveIndex struct {
	logger   logger.Logger
	indexDir string
	indexes  *xsync.MapOf[string, bleve.Index]
}

// NewBleveIndex keeps one index per document type. Without an index
// directory the indexes live in memory and are rebuilt on start.
func NewBleveIndex(ctx context.Context) *bleveIndex {
	return &bleveIndex{
		logger:   xcontext.Logger(ctx),
		indexDir: xcontext.Configs(ctx).Search.IndexDir,
		indexes:  xsync.NewMapOf[bleve.Index](),
	}
}

func (i *bleveIndex) IndexEvent(id string, data EventData) error {
	return i.index(EventDoc, id, data)
}

func (i *bleveIndex) DeleteEvent(id string) error {
	return i.delete(EventDoc, id)
}

func (i *bleveIndex) SearchEvent(query string, offset, limit int) ([]string, error) {
	return i.search(EventDoc, query, offset, limit)
}

func (i *bleveIndex) index(document, id string, data any) error {
	index, err := i.getIndexByDocument(document)
	if err != nil {
		return err
	}

	// Index overwrites an existing record with the same id.
	return index.Index(id, data)
}

func (i *bleveIndex) delete(document, id string) error {
	index, err := i.getIndexByDocument(document)
	if err != nil {
		return err
	}

	return index.Delete(id)
}

func (i *bleveIndex) search(document, query string, offset, limit int) ([]string, error) {
	index, err := i.getIndexByDocument(document)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, offset, false)
	searchResults, err := index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, match := range searchResults.Hits {
		ids = append(ids, match.ID)
	}

	return ids, nil
}

func (i *bleveIndex) Close() {
	i.logger.Infof("Closing all indexers...")

	i.indexes.Range(func(document string, index bleve.Index) bool {
		if err := index.Close(); err != nil {
			i.logger.Errorf("Cannot close indexer %s: %v", document, err)
		}

		return true
	})

	i.logger.Infof("Closing all indexers...done")
}

func (i *bleveIndex) getIndexByDocument(document string) (bleve.Index, error) {
	index, ok := i.indexes.Load(document)
	if ok {
		return index, nil
	}

	i.logger.Infof("A new document index is added: %s", document)

	var err error
	if i.indexDir == "" {
		index, err = bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
	} else {
		indexPath := path.Join(i.indexDir, document)
		index, err = bleve.New(indexPath, bleve.NewIndexMapping())
		if err != nil {
			if !errors.Is(err, bleve.ErrorIndexPathExists) {
				return nil, err
			}

			index, err = bleve.Open(indexPath)
			if err != nil {
				return nil, err
			}
		}
	}

	actual, loaded := i.indexes.LoadOrStore(document, index)
	if loaded {
		index.Close()
	}

	return actual, nil
}
