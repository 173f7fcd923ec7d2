// Package all imports all available fetchers for side-effect registration.
//
// Import this package from your main to ensure all fetchers are registered:
//
//	import _ "github.com/Vodeneev/openingalert/internal/parser/parsers/all"
package all

import (
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/betify"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/greenluck"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/pinnacle"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/sportaza"
)
