// Package dataprocessing turns raw worksheet rows into consolidated expense
// records and annotates the merged table with data-quality observations.
//
// The pipeline inside this package is strictly one-way:
//
//	ParseFile -> Reconstruct -> Classify -> Detector
//
// ParseFile reads the "Gastos del Mes" worksheet of a monthly workbook.
// Reconstruct folds the hierarchically formatted rows into flat records,
// carrying category labels forward and excluding subtotal rows. Classify maps
// free text onto the closed rubric taxonomy. Detector appends advisory
// observation tags (duplicates, missing fields, outliers, inflation-beating
// growth); detections never remove records from the table.
package dataprocessing
