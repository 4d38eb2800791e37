package model

// The interfaces below are satisfied by a record's optional side methods.
// inspect.Inspect type-asserts a record's zero value against each one; a
// record that implements none of them still gets a default single-column
// "ID" primary key when it has an ID field; without one, inspect.Inspect
// reports a *MissingPrimaryKeyError.

// PrimaryKeyer declares a record's primary key.
type PrimaryKeyer interface {
	PrimaryKey(s *Self) KeySpec
}

// Indexer declares a record's non-unique indexes.
type Indexer interface {
	Index(s *Self) []KeySpec
}

// UniqueIndexer declares a record's unique indexes, independent of its
// primary key.
type UniqueIndexer interface {
	UniqueIndex(s *Self) []KeySpec
}

// ForeignKeyer declares a record's virtual foreign keys.
type ForeignKeyer interface {
	ForeignKey(s *Self) []FKLink
}
