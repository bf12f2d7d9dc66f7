package main

import (
	"fmt"
	"log"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/geo"
	"github.com/kass/go-land-area/pkg/models"
	"github.com/kass/go-land-area/pkg/session"
)

func main() {
	// A field outside Pune, walked clockwise
	fixes := []models.GeoPoint{
		{Lat: 18.52040, Lon: 73.85670},
		{Lat: 18.52220, Lon: 73.85690},
		{Lat: 18.52210, Lon: 73.85950},
		{Lat: 18.52030, Lon: 73.85930},
	}

	fmt.Println("Projected vertices:")
	for i, p := range geo.Project(fixes) {
		fmt.Printf("  %d: x=%.2fm y=%.2fm\n", i, p.X, p.Y)
	}

	// Same walk through a tracking session, pausing halfway
	sess := session.New()
	if err := sess.Start(); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	for i, fix := range fixes {
		if i == 2 {
			if err := sess.Pause(); err != nil {
				log.Fatalf("Failed to pause: %v", err)
			}
			if err := sess.Resume(); err != nil {
				log.Fatalf("Failed to resume: %v", err)
			}
		}
		if err := sess.Record(fix); err != nil {
			log.Fatalf("Failed to record fix: %v", err)
		}
	}

	result, err := sess.Stop()
	if err != nil {
		log.Fatalf("Failed to stop session: %v", err)
	}

	fmt.Println(result)
	fmt.Printf("Perimeter: %.1f m\n", result.Perimeter)

	// Unit boundaries
	for _, sqm := range []float64{50, 101.17, 4046.86, 90000} {
		fmt.Printf("%10.2f sq.m -> %s\n", sqm, area.NewResult(sqm).Label())
	}
}
