// checkenv reports which configuration the cascade will run with. It never
// fails: missing keys just disable tiers, and the operator should see that
// before a delivery shows up.
package main

import (
	"fmt"
	"os"

	"github.com/conferente/labelscan/internal/common"
)

func main() {
	cfg := common.LoadConfig()

	fmt.Println("conferente environment check")
	fmt.Println()

	report("GOOGLE_VISION_API_KEY", os.Getenv("GOOGLE_VISION_API_KEY") != "",
		"cloud text tier disabled")
	report("GEMINI_API_KEY", os.Getenv("GEMINI_API_KEY") != "",
		"model tier disabled")
	fmt.Println()

	fmt.Printf("  DB_PATH        = %s\n", cfg.Database.Path)
	fmt.Printf("  GEMINI_MODEL   = %s\n", cfg.LLM.Model)
	fmt.Printf("  GEMINI_TIMEOUT = %s\n", cfg.LLM.Timeout)
	fmt.Printf("  GEMINI_RETRIES = %d\n", cfg.LLM.MaxRetries)
	fmt.Printf("  OCR_LANGUAGE   = %s\n", cfg.OCR.Language)
	if cfg.OCR.TessdataDir != "" {
		fmt.Printf("  TESSDATA_PREFIX = %s\n", cfg.OCR.TessdataDir)
	}
	fmt.Println()

	switch {
	case os.Getenv("GOOGLE_VISION_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "":
		fmt.Println("only the offline OCR tier will run; expect lower quality readings")
	case os.Getenv("GEMINI_API_KEY") == "":
		fmt.Println("no model tier fallback; hard-to-read labels will need manual entry")
	default:
		fmt.Println("full cascade available")
	}
}

func report(key string, set bool, consequence string) {
	if set {
		fmt.Printf("  %-22s set\n", key)
		return
	}
	fmt.Printf("  %-22s MISSING (%s)\n", key, consequence)
}
