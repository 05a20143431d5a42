// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

// Package cache holds computed analytics responses for a short TTL.
//
// Responses are keyed by caller, view and query parameters:
//
//	key := cache.GenerateKey(user, "kpi.alerts", params)
//	if v, ok := responses.Get(key); ok {
//	    return v
//	}
//
// The dataset cache clears this cache whenever it swaps in a new snapshot.
package cache
