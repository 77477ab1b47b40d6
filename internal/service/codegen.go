package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/eadl-dev/acadtrack-api/internal/models"
)

// generatePersonnelCode builds a matricule like "INS-3FA29C": role-derived
// prefix plus a random suffix. Codes are immutable once assigned.
func generatePersonnelCode(role models.PersonnelRole) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%06X", role.CodePrefix(), time.Now().UnixNano()&0xFFFFFF)
	}
	return fmt.Sprintf("%s-%s", role.CodePrefix(), strings.ToUpper(hex.EncodeToString(buf)))
}
