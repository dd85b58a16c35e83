// Package autoreg loads user-provider driver plugins through side-effect imports.
//
// This package is imported once by the composition root so plugin packages can
// self-register drivers in init() using the public plugin contract package.
package autoreg

import (
	_ "kv-shepherd.io/multiauth/plugins/userprovider/envlist"
)
