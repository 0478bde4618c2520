package coverage

import pkgLogger "github.com/fpt/go-testpilot/pkg/logger"

var logger = pkgLogger.NewComponentLogger("coverage")
