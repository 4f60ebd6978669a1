package web

import "SurvivalDashboard/src/processor"

type filterRequest struct {
	Class  string `json:"class"`
	Gender string `json:"gender"`
}

// rate 为 nil 表示该组没有数据
type groupRate struct {
	Group string   `json:"group"`
	Rate  *float64 `json:"rate"`
}

type classGenderRate struct {
	Class  int      `json:"class"`
	Gender string   `json:"gender"`
	Rate   *float64 `json:"rate"`
}

type farePoint struct {
	PassengerID int     `json:"passenger_id"`
	Fare        float64 `json:"fare"`
	Survived    bool    `json:"survived"`
	Class       int     `json:"class"`
}

type stateResponse struct {
	Class       string            `json:"class"`
	Gender      string            `json:"gender"`
	Version     int               `json:"version"`
	Rows        int               `json:"rows"`
	AgeGroups   []groupRate       `json:"age_groups"`
	ClassGender []classGenderRate `json:"class_gender"`
	Fares       []farePoint       `json:"fares"`
}

func ratePtr(rate float64) *float64 {
	if processor.NoData(rate) {
		return nil
	}
	return &rate
}

func newStateResponse(state processor.RenderState) stateResponse {
	v := state.Views
	resp := stateResponse{
		Class:   state.Selection.Class,
		Gender:  state.Selection.Gender,
		Version: state.Version,
		Rows:    v.Rows,
		Fares:   make([]farePoint, 0, len(v.Fares)),
	}
	for _, g := range processor.AgeGroups {
		resp.AgeGroups = append(resp.AgeGroups, groupRate{Group: g.String(), Rate: ratePtr(v.AgeGroups[g])})
	}
	for _, cls := range processor.Classes {
		for _, g := range processor.Genders {
			k := processor.ClassGender{Class: cls, Gender: g}
			resp.ClassGender = append(resp.ClassGender, classGenderRate{
				Class: int(cls), Gender: g.String(), Rate: ratePtr(v.ClassGender[k]),
			})
		}
	}
	for _, p := range v.Fares {
		resp.Fares = append(resp.Fares, farePoint{
			PassengerID: p.PassengerID, Fare: p.Fare, Survived: p.Survived, Class: int(p.Class),
		})
	}
	return resp
}
