// tokenhash prints the bcrypt hash of a token for the admin_token_hash
// setting.
package main

import (
	"fmt"
	"os"

	"nuha.dev/ipcanvas/internal/util"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tokenhash <token>")
		os.Exit(1)
	}
	fmt.Println(util.CryptPwd(os.Args[1]))
}
