package pdfops

import "context"

// StubBuilder stands in for the real PDF construction library. It validates
// inputs and hands back the source bytes untouched; swapping in a real
// writer only requires replacing this implementation.
type StubBuilder struct{}

func NewStubBuilder() *StubBuilder {
	return &StubBuilder{}
}

func (*StubBuilder) Protect(_ context.Context, data []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrInvalidPassword
	}
	return clone(data), nil
}

func (*StubBuilder) Assemble(_ context.Context, data []byte) ([]byte, error) {
	return clone(data), nil
}

func (*StubBuilder) Merge(_ context.Context, docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return clone(docs[0]), nil
}

func (*StubBuilder) Split(_ context.Context, data []byte, ranges []PageRange) ([][]byte, error) {
	out := make([][]byte, len(ranges))
	for i := range ranges {
		out[i] = clone(data)
	}
	return out, nil
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
