package schedule

import "math"

// CalculateEarnings считает итоговый заработок по журналу работ и снимку
// прайс-листа. Чистая функция, никогда не возвращает ошибку:
//
//   - любой PriceItemID <= 0 обнуляет весь расчёт (fail-closed, не ошибка);
//   - quantity < 1 трактуется как 1;
//   - удалённая позиция прайса даёт цену 0 и коэффициент 1.0;
//   - итог округляется один раз в конце банковским округлением
//     (round half to even) — поведение зафиксировано тестами на границах .5.
func CalculateEarnings(entries []WorkLogEntry, catalog map[int64]CatalogPrice) int64 {
	if len(entries) == 0 {
		return 0
	}
	for _, e := range entries {
		if e.PriceItemID <= 0 {
			return 0
		}
	}

	total := 0.0
	for _, e := range entries {
		p, ok := catalog[e.PriceItemID]
		if !ok {
			p = CatalogPrice{UnitPrice: 0, Coefficient: 1.0}
		}
		qty := e.Quantity
		if qty < 1 {
			qty = 1
		}
		total += float64(p.UnitPrice) * p.Coefficient * float64(qty)
	}

	n := int64(math.RoundToEven(total))
	if n < 0 {
		return 0
	}
	return n
}

// ReferencedItemIDs — уникальные id позиций прайса, один батч-запрос вместо N.
func ReferencedItemIDs(entries []WorkLogEntry) []int64 {
	seen := map[int64]struct{}{}
	var ids []int64
	for _, e := range entries {
		if e.PriceItemID <= 0 {
			continue
		}
		if _, ok := seen[e.PriceItemID]; ok {
			continue
		}
		seen[e.PriceItemID] = struct{}{}
		ids = append(ids, e.PriceItemID)
	}
	return ids
}
