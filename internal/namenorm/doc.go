// Package namenorm canonicalizes artist names and listing titles for
// comparison. It backs every string match in the pipeline: the confidence
// scorer, channel identity checks, enrichment candidate picking, and the
// pre-search cleaning of raw venue listing titles.
package namenorm
