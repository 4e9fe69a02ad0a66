package token

// keywords maps a scanned identifier's exact spelling to its keyword token,
// or leaves it absent (meaning plain IDENT) if it is not reserved.
//
// SIMPLE and PQL keywords share one table, so a single scanner core serves
// both tokenizer.NewSimple and tokenizer.NewPQL. As a consequence every
// spelling listed here scans as its keyword token in both languages, never
// as IDENT: a SIMPLE program cannot use a PQL keyword (e.g. "stmt", "with")
// as a procedure or variable name, and a PQL query cannot use a SIMPLE
// keyword (e.g. "then") as a synonym name.
var keywords = map[string]Token{
	// SIMPLE
	"procedure": PROCEDURE,
	"read":      READ,
	"print":     PRINT,
	"call":      CALL,
	"if":        IF,
	"then":      THEN,
	"else":      ELSE,
	"while":     WHILE,

	// PQL design entities
	"stmt":      STMT,
	"assign":    ASSIGN_ENT,
	"variable":  VARIABLE,
	"constant":  CONSTANT,
	"prog_line": PROG_LINE,

	// PQL clauses
	"Select":  SELECT,
	"such":    SUCH,
	"that":    THAT,
	"pattern": PATTERN,
	"with":    WITH,
	"BOOLEAN": BOOLEAN,

	// PQL relation names
	"Follows":  FOLLOWS,
	"Parent":   PARENT,
	"Calls":    CALLS,
	"Next":     NEXT,
	"Affects":  AFFECTS,
	"Uses":     USES,
	"Modifies": MODIFIES,
}

// Lookup returns the keyword token for ident, or (ILLEGAL, false) if ident
// is an ordinary identifier.
func Lookup(ident string) (Token, bool) {
	tok, ok := keywords[ident]
	return tok, ok
}
