// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package validation wraps go-playground/validator v10 behind a shared,
// lazily built validator and translates failures into the API's
// VALIDATION_ERROR shape.
//
// Error field names are JSON names, so a report request missing its
// platform list fails with field "platform", not "Platform". Slice rules
// are worded per item count:
//
//	min=1 on []string  -> "platform must not be empty"
//	len=2 on []string  -> "timerange must have exactly 2 items"
//	ne=all             -> "children must not be \"all\""
//
// Usage:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
