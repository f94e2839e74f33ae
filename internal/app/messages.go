package app

import (
	"photoid/internal/catalog"
	"photoid/internal/score"
)

// CatalogBuiltMsg is sent when the folder scan finishes.
type CatalogBuiltMsg struct {
	Catalog *catalog.Catalog
}

// CatalogErrorMsg is sent when the folder scan fails.
type CatalogErrorMsg struct {
	Err error
}

// StoreOpenedMsg is sent when the score database is open and the prior
// ledger has been loaded.
type StoreOpenedMsg struct {
	Store  *score.Store
	Ledger *score.Ledger
}

// StoreErrorMsg is sent when the score database cannot be opened or read.
type StoreErrorMsg struct {
	Err error
}

// SessionSavedMsg reports the outcome of recording the finished session.
type SessionSavedMsg struct {
	Err error
}

// PhotoOpenedMsg reports the outcome of handing the photo to the platform
// viewer.
type PhotoOpenedMsg struct {
	Err error
}
