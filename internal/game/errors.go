package game

import "errors"

var (
	ErrNotAuthorized         = errors.New("only the captain can do that")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrCannotDeleteAdmin     = errors.New("cannot delete the captain")
	ErrInsufficientPlayers   = errors.New("not enough players to start the round")
	ErrSessionCodesExhausted = errors.New("could not generate a unique session code")
	ErrInvalidImportFormat   = errors.New("csv must contain category and image_descr columns")
	ErrEmptyImport           = errors.New("csv contains no valid rows")
	ErrNoVotes               = errors.New("no votes have been cast")

	// ErrDuplicateSession is returned by Store.InsertSession when the code
	// is already taken; the primary-key constraint is the enforcement.
	ErrDuplicateSession = errors.New("session code already exists")
)
