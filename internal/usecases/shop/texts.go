package shop

import (
	"fmt"

	"github.com/admin/tg-bots/organic-shop/internal/pkg/orderlink"
	"github.com/shopspring/decimal"
)

const (
	welcomeText = "Assalomu alaykum! 🌿\n\n" +
		"Organic Store mahsulotlarini \"Buyurtma berish\" tugmasi orqali " +
		"oson va qulay tarzda xarid qilishingiz mumkin.\n\n" +
		"Marhamat👇"

	orderButtonText = "🛒 Buyurtma berish"

	helpText = "Buyruqlar:\n" +
		"/start - do'kon bilan tanishish\n" +
		"/help - yordam\n\n" +
		"Mahsulotlarni \"Buyurtma berish\" tugmasi orqali tanlashingiz mumkin."

	productNotFoundText = "Kechirasiz, bu mahsulot topilmadi yoki hozirda sotuvda yo'q. 🙏\n\n" +
		"Boshqa mahsulotlarni do'konimizdan tanlang👇"

	orderFooter = "Buyurtmani rasmiylashtirish uchun quyidagi tugmani bosing👇"
)

// orderSummaryText та же строка, что уходит администратору в ссылке на заказ
func orderSummaryText(name string, id int64, price decimal.Decimal) string {
	return fmt.Sprintf("%s\n\n%s", orderlink.OrderText(name, id, price), orderFooter)
}
