package validation

// PhoneForm is the guest order tracking form.
type PhoneForm struct {
	Phone string `form:"phone" validate:"required,bdphone"`
}

// LoginForm is posted by /login.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// RegisterForm is posted by /register.
type RegisterForm struct {
	Name     string `form:"name" validate:"required,min=2"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"omitempty,bdphone"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
}

// ForgotPasswordForm is posted by /forgot-password.
type ForgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordForm is posted by /reset-password.
type ResetPasswordForm struct {
	Token    string `form:"token" validate:"required"`
	Password string `form:"password" validate:"required,min=6"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
}

// CheckoutForm carries the shipping details of an order.
type CheckoutForm struct {
	Name             string `form:"name" validate:"required"`
	Phone            string `form:"phone" validate:"required,bdphone"`
	Email            string `form:"email" validate:"omitempty,email"`
	HouseOrVillage   string `form:"houseOrVillage" validate:"required"`
	RoadOrPostOffice string `form:"roadOrPostOffice" validate:"required"`
	BlockOrThana     string `form:"blockOrThana" validate:"required"`
	District         string `form:"district" validate:"required"`
	PaymentMethod    string `form:"paymentMethod" validate:"omitempty,oneof=COD"`
}

// ProfileForm is posted by /profile/edit.
type ProfileForm struct {
	Name             string `form:"name" validate:"required,min=2"`
	Phone            string `form:"phone" validate:"required,bdphone"`
	HouseOrVillage   string `form:"houseOrVillage"`
	RoadOrPostOffice string `form:"roadOrPostOffice"`
	BlockOrThana     string `form:"blockOrThana"`
	District         string `form:"district"`
}

// CartForm adds or updates a cart line.
type CartForm struct {
	ProductID string `form:"productId" validate:"required"`
	Quantity  int    `form:"quantity" validate:"gte=0,lte=99"`
}
