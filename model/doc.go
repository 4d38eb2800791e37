// Package model defines the vocabulary record authors use to declare keys,
// indexes, and virtual foreign keys without a fluent builder.
//
// A record is a plain Go struct. Side methods taking a *Self sentinel
// describe its keys:
//
//	type User struct {
//		ID    int
//		Email string
//	}
//
//	func (User) PrimaryKey(s *model.Self) model.KeySpec {
//		return model.Key(s.Col("ID"))
//	}
//
//	func (User) UniqueIndex(s *model.Self) []model.KeySpec {
//		return []model.KeySpec{model.Key(s.Col("Email"))}
//	}
//
// Self never evaluates anything; it only records which attributes a method
// touched. That recording is the entire probe.
package model
