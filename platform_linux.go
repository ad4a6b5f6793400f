package main

import _ "github.com/mj1618/patternpilot/internal/platform/linux"
