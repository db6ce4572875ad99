package deepface

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img              string `json:"img"`               // base64 data URL
	ModelName        string `json:"model_name"`        // "Dlib", "Facenet512", ...
	DetectorBackend  string `json:"detector_backend"`  // "opencv", "retinaface", ...
	EnforceDetection bool   `json:"enforce_detection"` // fail instead of embedding the whole frame
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding      []float64  `json:"embedding"`
	FacialArea     FacialArea `json:"facial_area"`
	FaceConfidence float64    `json:"face_confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// errorResponse is the body DeepFace sends with 4xx/5xx replies
type errorResponse struct {
	Error string `json:"error"`
}
