// Package scraper walks the paginated animal listing, fetches each animal
// page and extracts an animal.Record from it.
//
// The pipeline is strictly sequential: the Lister is driven page by page
// until a page yields no links, every link is handed to the Extractor, and a
// fixed pause separates consecutive record fetches. Successful records are
// accumulated in memory and handed to the configured RecordSinks once the
// walk ends.
package scraper
