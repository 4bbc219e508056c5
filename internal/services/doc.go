// Package services holds cross-cutting helpers shared by pipeline components:
// the sentinel error taxonomy used to classify failures, context annotations
// for run, stage, and artist identity, and a bounded retry helper for
// collaborator calls.
package services
