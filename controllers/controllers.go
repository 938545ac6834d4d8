// Package controllers holds the HTTP handlers. They bind and validate
// request bodies, call into services, and render the uniform
// {success, message} envelope. All state comes in through Init.
package controllers

import (
	"time"

	"github.com/OmPrakash-X/Konnekt-sub001/services"
	"github.com/OmPrakash-X/Konnekt-sub001/store"
	"github.com/OmPrakash-X/Konnekt-sub001/utils"
)

// Deps is everything the handlers need; main wires it once at startup and
// tests wire it per test with the in-memory store.
type Deps struct {
	Auth     *services.AuthService
	Sessions *services.SessionService
	Ledger   *services.LedgerService
	Store    store.Store
	Geocoder utils.Geocoder
	TokenTTL time.Duration
}

var deps Deps

func Init(d Deps) { deps = d }
