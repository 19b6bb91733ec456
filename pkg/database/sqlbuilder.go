package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
)

// The builders below pin go-sqlbuilder to the PostgreSQL flavor so placeholders render as $n.

type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{sqlbuilder.PostgreSQL.NewInsertBuilder()}
}

func (ib *InsertBuilder) InsertInto(table string) *InsertBuilder {
	ib.InsertBuilder.InsertInto(table)
	return ib
}

func (ib *InsertBuilder) Cols(col ...string) *InsertBuilder {
	ib.InsertBuilder.Cols(col...)
	return ib
}

func (ib *InsertBuilder) Values(value ...any) *InsertBuilder {
	ib.InsertBuilder.Values(value...)
	return ib
}

func (ib *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	ib.SQL("ON CONFLICT DO NOTHING")
	return ib
}

type DeleteBuilder struct {
	*sqlbuilder.DeleteBuilder
}

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{sqlbuilder.PostgreSQL.NewSelectBuilder()}
}

// AnyUUID renders "<column> = ANY($n::uuid[])" binding ids as a single Postgres array.
func (sb *SelectBuilder) AnyUUID(column string, ids []uuid.UUID) string {
	return fmt.Sprintf("%s = ANY(%s::uuid[])", column, sb.Var(UUIDArray(ids)))
}

// Lock appends a row lock clause such as "FOR UPDATE" or "FOR SHARE".
func (sb *SelectBuilder) Lock(mode string) *SelectBuilder {
	sb.SQL(mode)
	return sb
}

// Struct maps a row type's db tags to columns.
type Struct struct {
	*sqlbuilder.Struct
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(sqlbuilder.PostgreSQL)}
}

func (s *Struct) SelectFrom(table string) *SelectBuilder {
	return &SelectBuilder{s.Struct.SelectFrom(table)}
}

func (s *Struct) InsertInto(table string, v ...any) *InsertBuilder {
	return &InsertBuilder{s.Struct.InsertInto(table, v...)}
}

func (s *Struct) DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{s.Struct.DeleteFrom(table)}
}

// UUIDArray converts ids into a text array lib/pq can bind; Postgres casts it back with ::uuid[].
func UUIDArray(ids []uuid.UUID) pq.StringArray {
	values := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}
