// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated means the gateway config enables neither the
// proxy listener nor the health listener. main treats it as fatal.
var errNoHandlersAreCreated = errors.New("no handlers are created")
