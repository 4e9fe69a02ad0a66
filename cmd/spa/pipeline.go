package main

import "github.com/darienchong/spa/pkb"

// pkbResult wraps a built PKB so analyze and query can share the same
// parse+extract pipeline without query depending on analyze's flag type.
type pkbResult struct {
	kb *pkb.PKB
}
