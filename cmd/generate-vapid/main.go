package main

import (
	"fmt"
	"log"

	"github.com/ymmiz/berrifyApp/utils"
)

func main() {
	log.Println("🔐 Generating VAPID keys...")

	publicKey, privateKey, err := utils.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("❌ Error generating keys: %v", err)
	}

	fmt.Println("\n✅ VAPID keys generated!")
	fmt.Println("\nAdd these lines to your .env file:")
	fmt.Println()
	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
	fmt.Println("VAPID_SUBJECT=mailto:your-email@example.com")
	fmt.Println("\n⚠️  Never share the private key!")
}
