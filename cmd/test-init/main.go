package main

import (
	"fmt"
	"time"

	"github.com/drshade/linguist/internal/definitions"
	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/store"
)

func main() {
	start := time.Now()

	t1 := time.Now()
	ds, err := definitions.LoadEmbedded()
	if err != nil {
		panic(err)
	}
	fmt.Printf("LoadEmbedded: %v (%d languages, %d heuristic groups, %d vendor patterns)\n",
		time.Since(t1), len(ds.Languages), len(ds.Heuristics.Disambiguations), len(ds.Vendor))

	t2 := time.Now()
	s, err := store.New(ds)
	if err != nil {
		panic(err)
	}
	fmt.Printf("BuildStore: %v (%d extensions)\n", time.Since(t2), len(s.Extensions()))

	t3 := time.Now()
	d, err := detector.New(s)
	if err != nil {
		panic(err)
	}
	fmt.Printf("NewDetector: %v\n", time.Since(t3))

	t4 := time.Now()
	d.Detect("include/util.h", []byte("#include <iostream>\n"))
	fmt.Printf("FirstDetect: %v\n", time.Since(t4))

	fmt.Printf("\nTotal init: %v\n", time.Since(start))
}
