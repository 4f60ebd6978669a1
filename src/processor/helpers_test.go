package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var titanicHeader = []string{"PassengerId", "Survived", "Pclass", "Sex", "Age", "Fare", "Cabin", "Embarked"}

func rawFrame(header []string, rows ...[]string) dataframe.DataFrame {
	records := append([][]string{header}, rows...)
	return dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

func rec(id int, class Class, sex Gender, survived bool, fare, age float64) PassengerRecord {
	return PassengerRecord{
		PassengerID: id,
		Class:       class,
		Sex:         sex,
		Survived:    survived,
		Fare:        fare,
		Age:         age,
		AgeGroup:    AgeGroupOf(age),
		Cabin:       UnknownCabin,
		Embarked:    "S",
	}
}

// 四名乘客, 舱位与性别各不相同
func fourPassengerTable() *EnrichedTable {
	return NewEnrichedTable([]PassengerRecord{
		rec(1, FirstClass, Female, true, 100, 30),
		rec(2, FirstClass, Male, false, 80, 40),
		rec(3, ThirdClass, Female, true, 10, 8),
		rec(4, ThirdClass, Male, false, 9, 70),
	})
}

func mixedTable() *EnrichedTable {
	return NewEnrichedTable([]PassengerRecord{
		rec(1, FirstClass, Female, true, 211.3, 29),
		rec(2, FirstClass, Male, false, 151.5, 45),
		rec(3, SecondClass, Female, true, 26, 14),
		rec(4, SecondClass, Male, false, 13, 62),
		rec(5, ThirdClass, Female, false, 7.9, 2),
		rec(6, ThirdClass, Male, true, 8.05, 19),
		rec(7, ThirdClass, Male, false, 7.25, 22),
		rec(8, FirstClass, Female, true, 71.3, 38),
	})
}
