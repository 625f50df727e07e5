package disasm

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/retrogolib/log"
)

// SetComment attaches a comment to the address, replacing an existing one.
// Whitespace is collapsed to single spaces, an empty text removes the
// comment.
func (db *Database) SetComment(addr address.Address, text string) error {
	if err := db.validate(addr); err != nil {
		return err
	}

	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		delete(db.comments, addr)
		return nil
	}
	db.comments[addr] = text
	db.logger.Debug("Set comment", log.Stringer("address", addr))
	return nil
}

// ClearComment removes the comment of the address.
func (db *Database) ClearComment(addr address.Address) error {
	if _, ok := db.comments[addr]; !ok {
		return fmt.Errorf("%w: no comment at %s", address.ErrUnknownAddress, addr)
	}
	delete(db.comments, addr)
	return nil
}

// Comment returns the comment of the address.
func (db *Database) Comment(addr address.Address) (string, bool) {
	text, ok := db.comments[addr]
	return text, ok
}

// Comments returns all comments sorted by address.
func (db *Database) Comments() []program.Comment {
	addrs := slices.SortedFunc(maps.Keys(db.comments), address.Address.Compare)
	comments := make([]program.Comment, 0, len(addrs))
	for _, a := range addrs {
		comments = append(comments, program.Comment{Address: a, Text: db.comments[a]})
	}
	return comments
}
