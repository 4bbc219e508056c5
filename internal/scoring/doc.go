// Package scoring rates how well a candidate video matches a scraped artist
// name. Score is a pure function over the three text inputs so every decision
// is reproducible from its match log entry alone.
package scoring
