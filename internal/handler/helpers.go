package handler

import (
	"fmt"
	"strconv"
)

// parseInt64Param parses an integer path or query parameter with a
// meaningful error.
func parseInt64Param(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}
	return val, nil
}
