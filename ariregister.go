// Package ariregister turns the Estonian e-Business Register open-data
// dumps (a semicolon-delimited company file and several very large JSON
// array dumps) into a locally queryable SQLite store, and serves lookups
// through a tiered fallback chain: embedded store, raw-file scan, live
// portal scrape.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency or function
// (e.g., sqlite/, opendata/, goquery/, resolver/).
package ariregister
