// Chatstat - Parental Monitoring Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chatstat

/*
Package aggregate turns filtered monitoring events into chart-ready counts.

Every view takes the full event slice, the request criteria and a reference
time, applies its own filter chain, and returns a value carrying an explicit
NoData flag when nothing matched. No view returns an error for an empty
result.

# Counting

All counts are distinct ids: content ids for content views, comment ids for
comment views. Alert and classification values are checked for validity
before grouping, so "No", empty and "nan" never form a category.

# Period-over-period deltas

Resample buckets a series by cadence, labelling each bucket with the day its
period ends (Sunday for weeks, month end, quarter end, December 31st). Empty
periods inside the series appear with zero counts. A single-bucket series
defines its delta as its own count. The KPI reports no data unless the bucket
for the current period exists.

# Percentages

NormalizePercentages rounds each share and pushes the rounding remainder onto
the largest share so the total is exactly 100. Equal largest shares resolve to
the smallest category key.

# Zero-fill

ZeroFill inserts the categories of a fixed set (severities, content
categories) that are missing from a grouped result, so renderers never see a
gap.
*/
package aggregate
