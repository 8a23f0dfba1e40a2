// comments-audit — офлайн-проверка согласованности иерархии комментариев.
//
//	comments-audit --config ./local.yaml guwen:64d0c0ffee0000000000aaaa writer:42
//
// Код выхода: 0 — нарушений нет, 2 — найдены нарушения, 1 — ошибка запуска.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pribylovaa/poem-comments/internal/service"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, service.ErrInconsistentState) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
