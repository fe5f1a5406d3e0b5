package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN    string
	RedisURL    string
	JWTSecret   string
	Port        string
	StrikeLimit uint32
	UnitScale   uint64
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	strikes, err := strconv.ParseUint(getenv("STRIKE_LIMIT", "1"), 10, 32)
	if err != nil || strikes == 0 {
		log.Fatalf("bad STRIKE_LIMIT")
	}
	scale, err := strconv.ParseUint(getenv("UNIT_SCALE", "1000"), 10, 64)
	if err != nil || scale == 0 {
		log.Fatalf("bad UNIT_SCALE")
	}
	return Config{
		MySQLDSN:    getenv("MYSQL_DSN", "quadfund:quadfund@tcp(localhost:3306)/quadfund"),
		RedisURL:    getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:   getenv("JWT_SECRET", ""),
		Port:        getenv("PORT", "8080"),
		StrikeLimit: uint32(strikes),
		UnitScale:   scale,
	}
}
