package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/baechuer/user-service/internal/domain"
)

// userDoc is the stored shape of a user in the users collection.
type userDoc struct {
	ID                   bson.ObjectID `bson:"_id,omitempty"`
	Firstname            string        `bson:"firstname"`
	Lastname             string        `bson:"lastname"`
	Email                string        `bson:"email"`
	Bio                  string        `bson:"bio"`
	PasswordHash         string        `bson:"password"`
	ResetPasswordToken   string        `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time    `bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time     `bson:"createdAt"`
	UpdatedAt            time.Time     `bson:"updatedAt"`
}

func (d userDoc) toDomain() domain.User {
	u := domain.User{
		ID:             d.ID.Hex(),
		Firstname:      d.Firstname,
		Lastname:       d.Lastname,
		Email:          d.Email,
		Bio:            d.Bio,
		PasswordHash:   d.PasswordHash,
		ResetTokenHash: d.ResetPasswordToken,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	if d.ResetPasswordExpires != nil {
		t := d.ResetPasswordExpires.UTC()
		u.ResetExpiresAt = &t
	}
	return u
}
