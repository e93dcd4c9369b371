package utils

import (
	"log"
	"time"
)

func TimeNowBRT() time.Time {
	return time.Now().In(GetBRTLocation())
}

func GetBRTLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}
