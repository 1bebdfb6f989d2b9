// Command findash-token prints random access tokens suitable for
// TRUSTED_TOKENS or AUTH_TOKEN_<n>.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
)

func main() {
	count := flag.Int("n", 1, "number of tokens to generate")
	size := flag.Int("bytes", 32, "random bytes per token")
	flag.Parse()

	if *count < 1 || *size < 16 {
		log.Fatalf("need -n >= 1 and -bytes >= 16")
	}

	for i := 1; i <= *count; i++ {
		b := make([]byte, *size)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("read random bytes: %v", err)
		}
		fmt.Printf("AUTH_TOKEN_%d=%s\n", i, base64.RawURLEncoding.EncodeToString(b))
	}
}
