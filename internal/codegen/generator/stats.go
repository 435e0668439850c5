package generator

// Stats counts the outcome of every rule application.
type Stats struct {
	Written   int
	Unchanged int
	Skipped   int
	Listed    int
	Missing   int
	Failed    int
	Bytes     int64
}

func (s *Stats) Add(o Stats) {
	s.Written += o.Written
	s.Unchanged += o.Unchanged
	s.Skipped += o.Skipped
	s.Listed += o.Listed
	s.Missing += o.Missing
	s.Failed += o.Failed
	s.Bytes += o.Bytes
}
