package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"volcano-platform/internal/models"
)

// DemoDataProcessing demonstrates the sample parsing without database
func main() {
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("VOLCANO PLATFORM - SAMPLE PROCESSING DEMONSTRATION")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()

	// Process each per-volcano sample file
	dataDir := "./georoc_data"
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv"))
	if err != nil {
		fmt.Printf("Error reading directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d volcano sample files\n\n", len(files))

	totalRecords := 0
	validRecords := 0
	datedRecords := 0

	for _, filePath := range files {
		fileName := filepath.Base(filePath)
		volcanoName := strings.TrimSuffix(fileName, filepath.Ext(fileName))

		fmt.Printf("─────────────────────────────────────────────────────────────\n")
		fmt.Printf("Processing Volcano: %s\n", volcanoName)
		fmt.Printf("─────────────────────────────────────────────────────────────\n")

		file, err := os.Open(filePath)
		if err != nil {
			fmt.Printf("  Failed to open file: %v\n", err)
			continue
		}

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1

		header, err := reader.Read()
		if err != nil {
			fmt.Printf("  Failed to read header: %v\n", err)
			file.Close()
			continue
		}

		columns := make(map[string]int, len(header))
		for i, name := range header {
			columns[strings.TrimSpace(name)] = i
		}
		get := func(row []string, name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		fileRecords := 0
		fileValid := 0
		fileDated := 0

		for i := 0; ; i++ {
			row, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				fmt.Printf("  [%d] Invalid row: %v\n", i+1, err)
				continue
			}

			totalRecords++
			fileRecords++

			record := &models.RawSampleRecord{
				EruptionYear:  get(row, "ERUPTION YEAR"),
				EruptionMonth: get(row, "ERUPTION MONTH"),
				EruptionDay:   get(row, "ERUPTION DAY"),
				SiO2:          get(row, "SIO2(WT%)"),
				Na2O:          get(row, "NA2O(WT%)"),
				K2O:           get(row, "K2O(WT%)"),
				FeO:           get(row, "FEO(WT%)"),
				CaO:           get(row, "CAO(WT%)"),
				MgO:           get(row, "MGO(WT%)"),
				RockClass:     get(row, "MATERIAL"),
			}

			sample, err := record.ToSample(volcanoName)
			if err != nil {
				fmt.Printf("  [%d] Conversion error: %v\n", i+1, err)
				continue
			}

			fileValid++
			validRecords++

			hasDate := sample.EruptionYear != nil
			if hasDate {
				fileDated++
				datedRecords++
			}

			// Print first 3 records of each file
			if i < 3 {
				fmt.Printf("  [%d] Class: %-20s | SiO2: %6.2f | Na2O+K2O: %6.2f", i+1,
					sample.RockClass,
					sample.Oxide(models.OxideSiO2),
					sample.TotalAlkali(),
				)
				if hasDate {
					fmt.Printf(" | Year: %d", *sample.EruptionYear)
				} else {
					fmt.Printf(" | Year: NULL")
				}
				fmt.Println()
			}
		}

		fmt.Printf("\n  Volcano Summary:\n")
		fmt.Printf("    Total records: %d\n", fileRecords)
		fmt.Printf("    Valid conversions: %d\n", fileValid)
		fmt.Printf("    Records with eruption dates: %d\n", fileDated)
		fmt.Println()

		file.Close()
	}

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("PROCESSING SUMMARY")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Printf("Total sample files:     %d\n", len(files))
	fmt.Printf("Total records:          %d\n", totalRecords)
	fmt.Printf("Valid conversions:      %d\n", validRecords)
	fmt.Printf("Dated records:          %d\n", datedRecords)
	if totalRecords > 0 {
		fmt.Printf("Success rate:           %.2f%%\n", float64(validRecords)/float64(totalRecords)*100)
	}
	fmt.Println()

	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println("✅ SAMPLE PROCESSING DEMONSTRATION COMPLETE")
	fmt.Println("════════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("The system successfully:")
	fmt.Println("  ✓ Parsed per-volcano GEOROC CSV files")
	fmt.Println("  ✓ Extracted major-oxide measurements (SiO2, Na2O, K2O, ...)")
	fmt.Println("  ✓ Handled missing eruption dates (empty → NULL)")
	fmt.Println("  ✓ Computed total alkali (Na2O+K2O) per sample")
	fmt.Println("  ✓ Validated data format and types")
	fmt.Println()
	fmt.Println("With a database, this would:")
	fmt.Println("  • Store all samples in the rock_samples table")
	fmt.Println("  • Join them against the eruption_events table by name and date")
	fmt.Println("  • Serve chart data via REST API endpoints")
	fmt.Println("  • Provide real-time metrics and monitoring")
	fmt.Println()
}
