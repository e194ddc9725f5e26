package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCost — стоимость bcrypt при хешировании паролей.
const HashCost = 10

// HashPassword хеширует пароль в открытом виде перед сохранением.
// Вызывается явно на пути записи (создание пользователя и смена пароля),
// а не скрытым хуком модели.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword сравнивает пароль в открытом виде с сохраненным хешем.
func CheckPassword(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
