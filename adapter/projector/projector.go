// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/adapter/fieldnavigator"
	"github.com/docdao/docdao/domain"
)

// Projector implements [domain.Projector].
type Projector struct {
	fn     domain.FieldNavigator
	docFac domain.DocumentFactory
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(options ...Option) domain.Projector {
	p := &Projector{
		docFac: data.NewDocument,
	}
	for _, option := range options {
		option(p)
	}
	if p.fn == nil {
		p.fn = fieldnavigator.NewFieldNavigator(p.docFac)
	}
	return p
}

// Project implements [domain.Projector]. The id field is always kept.
func (p *Projector) Project(docs []domain.Document, fields []string, idField string) ([]domain.Document, error) {
	if len(fields) == 0 {
		return docs, nil
	}

	addrs := make([][]string, 0, len(fields)+1)
	for _, field := range fields {
		addr, err := p.fn.GetAddress(field)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}

	res := make([]domain.Document, len(docs))
	for n, doc := range docs {
		projected, err := p.projectDoc(doc, addrs)
		if err != nil {
			return nil, err
		}
		if doc.Has(idField) {
			projected.Set(idField, doc.Get(idField))
		}
		res[n] = projected
	}
	return res, nil
}

func (p *Projector) projectDoc(doc domain.Document, addrs [][]string) (domain.Document, error) {
	res, err := p.docFac(nil)
	if err != nil {
		return nil, err
	}

	for _, addr := range addrs {
		values, _, err := p.fn.GetField(doc, addr...)
		if err != nil {
			return nil, err
		}
		value, defined := values[0].Get()
		if !defined {
			continue
		}
		targets, err := p.fn.EnsureField(res, addr...)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			target.Set(value)
		}
	}
	return res, nil
}
