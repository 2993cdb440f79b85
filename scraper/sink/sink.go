package sink

import "github.com/campushub/campusnews/model"

// EntrySink receives the normalized batch an adapter produced. Adapters
// never persist anything themselves.
type EntrySink interface {
	Push(entries []model.RawEntry) error
}
