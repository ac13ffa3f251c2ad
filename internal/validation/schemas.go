package validation

// Schema names accepted by Validator.Validate.
const (
	SchemaRegister             = "register"
	SchemaLogin                = "login"
	SchemaUpdate               = "update"
	SchemaResetPassword        = "resetPassword"
	SchemaChangePassword       = "changePassword"
	SchemaRequestPasswordReset = "requestPasswordReset"
)

type registerSchema struct {
	Firstname string `json:"firstname" validate:"required,min=1"`
	Lastname  string `json:"lastname" validate:"required,min=1"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Bio       string `json:"bio" validate:"required"`
}

type loginSchema struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Optional fields are pointers so a present-but-empty value is still checked.
type updateSchema struct {
	Firstname *string `json:"firstname" validate:"omitnil,min=1"`
	Lastname  *string `json:"lastname" validate:"omitnil,min=1"`
	Email     *string `json:"email" validate:"omitnil,email"`
	Bio       *string `json:"bio" validate:"omitnil,min=1"`
}

type resetPasswordSchema struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type changePasswordSchema struct {
	OldPassword string `json:"oldPassword" validate:"required,min=6"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type requestPasswordResetSchema struct {
	Email string `json:"email" validate:"required,email"`
}

var schemas = map[string]func() any{
	SchemaRegister:             func() any { return &registerSchema{} },
	SchemaLogin:                func() any { return &loginSchema{} },
	SchemaUpdate:               func() any { return &updateSchema{} },
	SchemaResetPassword:        func() any { return &resetPasswordSchema{} },
	SchemaChangePassword:       func() any { return &changePasswordSchema{} },
	SchemaRequestPasswordReset: func() any { return &requestPasswordResetSchema{} },
}
