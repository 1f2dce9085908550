package database

import (
	"log"

	"reqflow/internal/model"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// demo accounts, one per role. Real deployments provision users through
// /api/auth/register or an external identity source; the seed only exists
// so a fresh database is immediately usable.
var seedUsers = []struct {
	Name       string
	Username   string
	Password   string
	Role       model.Role
	Department string
	GroupIDs   pq.Int64Array
}{
	{"Daniel Moradi", "requester", "password123", model.RoleRequester, "IT Unit", pq.Int64Array{1}},
	{"Alex Mohammadi", "grouplead", "password123", model.RoleGroupLead, "Administration", pq.Int64Array{1}},
	{"Reza Karimi", "deputy", "password123", model.RoleDeputy, "Deputy Office", pq.Int64Array{1}},
	{"Farah Ahmadi", "networkhead", "password123", model.RoleNetworkHead, "Network Section", pq.Int64Array{1}},
	{"Hossein Nazari", "networkadmin", "password123", model.RoleNetworkAdmin, "Network Operations", pq.Int64Array{0}},
}

// Seed inserts the demo users if they are not present yet. Safe to run on
// every startup.
func Seed(db *gorm.DB) error {
	for _, u := range seedUsers {
		var count int64
		if err := db.Model(&model.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := model.User{
			Name:       u.Name,
			Username:   u.Username,
			Password:   string(hashed),
			Role:       u.Role,
			Department: u.Department,
			GroupIDs:   u.GroupIDs,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("Seeded user %s (%s)", u.Username, u.Role)
	}
	return nil
}
