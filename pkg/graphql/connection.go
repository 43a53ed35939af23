package graphql

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holocron-dev/holocron/pkg/graphql/model"
	"github.com/holocron-dev/holocron/pkg/models"
)

const cursorPrefix = "arrayconnection:"

// ErrInvalidPage matches first/after arguments that cannot be applied.
var ErrInvalidPage = errors.New("invalid page arguments")

type pageError struct{ msg string }

func (e *pageError) Error() string        { return e.msg }
func (e *pageError) Is(target error) bool { return target == ErrInvalidPage }

func pageErrorf(format string, args ...any) error {
	return &pageError{msg: fmt.Sprintf(format, args...)}
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, pageErrorf("invalid cursor %q", cursor)
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(raw), cursorPrefix))
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) || offset < 0 {
		return 0, pageErrorf("invalid cursor %q", cursor)
	}
	return offset, nil
}

// page is one Relay window over a fully loaded list.
type page[T any] struct {
	nodes   []*T
	cursors []string
	info    *model.PageInfo
	total   int
}

// paginate slices items by the Relay first/after arguments. first defaults
// to maxFirst and may not exceed it.
func paginate[T any](items []*T, first *int, after *string, maxFirst int) (*page[T], error) {
	limit := maxFirst
	if first != nil {
		if *first < 0 {
			return nil, pageErrorf("first must be a non-negative integer, got %d", *first)
		}
		if *first > maxFirst {
			return nil, pageErrorf("requesting %d records exceeds the first limit of %d records", *first, maxFirst)
		}
		limit = *first
	}

	start := 0
	if after != nil && *after != "" {
		offset, err := decodeCursor(*after)
		if err != nil {
			return nil, err
		}
		start = offset + 1
	}
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	p := &page[T]{
		nodes:   items[start:end],
		cursors: make([]string, 0, end-start),
		total:   len(items),
		info: &model.PageInfo{
			HasNextPage:     end < len(items),
			HasPreviousPage: start > 0,
		},
	}
	for i := start; i < end; i++ {
		p.cursors = append(p.cursors, encodeCursor(i))
	}
	if len(p.cursors) > 0 {
		p.info.StartCursor = &p.cursors[0]
		p.info.EndCursor = &p.cursors[len(p.cursors)-1]
	}
	return p, nil
}

func personConnection(items []*models.Person, first *int, after *string, maxFirst int) (*model.PersonConnection, error) {
	p, err := paginate(items, first, after, maxFirst)
	if err != nil {
		return nil, err
	}
	conn := &model.PersonConnection{Edges: make([]*model.PersonEdge, len(p.nodes)), PageInfo: p.info, TotalCount: p.total}
	for i, node := range p.nodes {
		conn.Edges[i] = &model.PersonEdge{Node: node, Cursor: p.cursors[i]}
	}
	return conn, nil
}

func filmConnection(items []*models.Film, first *int, after *string, maxFirst int) (*model.FilmConnection, error) {
	p, err := paginate(items, first, after, maxFirst)
	if err != nil {
		return nil, err
	}
	conn := &model.FilmConnection{Edges: make([]*model.FilmEdge, len(p.nodes)), PageInfo: p.info, TotalCount: p.total}
	for i, node := range p.nodes {
		conn.Edges[i] = &model.FilmEdge{Node: node, Cursor: p.cursors[i]}
	}
	return conn, nil
}

func planetConnection(items []*models.Planet, first *int, after *string, maxFirst int) (*model.PlanetConnection, error) {
	p, err := paginate(items, first, after, maxFirst)
	if err != nil {
		return nil, err
	}
	conn := &model.PlanetConnection{Edges: make([]*model.PlanetEdge, len(p.nodes)), PageInfo: p.info, TotalCount: p.total}
	for i, node := range p.nodes {
		conn.Edges[i] = &model.PlanetEdge{Node: node, Cursor: p.cursors[i]}
	}
	return conn, nil
}

func speciesConnection(items []*models.Species, first *int, after *string, maxFirst int) (*model.SpeciesConnection, error) {
	p, err := paginate(items, first, after, maxFirst)
	if err != nil {
		return nil, err
	}
	conn := &model.SpeciesConnection{Edges: make([]*model.SpeciesEdge, len(p.nodes)), PageInfo: p.info, TotalCount: p.total}
	for i, node := range p.nodes {
		conn.Edges[i] = &model.SpeciesEdge{Node: node, Cursor: p.cursors[i]}
	}
	return conn, nil
}
