// Package models contains the GORM persistence models. They carry all ORM
// tags and table mappings so the domain types stay free of them; each model
// converts to and from its domain aggregate with ToDomain / FromDomain.
package models
