// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package models defines the data structures shared across Chatstat.

Model Categories:

1. Dataset:
  - Event: one content item and an optional comment, as loaded from the
    dataset source
  - Severity, category and platform vocabularies with IsValid and
    SeverityRank helpers

2. Filter Selection:
  - Criteria: caller, time mode, date range, member, platform and alert
  - TimeMode: D, W, M, Q, A or custom, with display labels

3. Reports:
  - ReportRequest: validated input of preview and generation
  - ReportRow: one synthesized report line
  - ReportMetadata: the stored record of a generated report

4. API Envelope:
  - APIResponse, Metadata and APIError

Events are immutable once loaded. Handlers share one snapshot slice and
must not modify it.

See Also:

  - internal/filter: predicates over Event
  - internal/metadata: persistence of ReportMetadata
*/
package models
