// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package icd10

// SourceBuiltin is the IndexInfo source name for the built-in catalog.
const SourceBuiltin = "builtin"

// BuiltinCatalog returns a small code set spanning every chapter of the
// tabular list, including non-billable category rows so the code tree has
// interior nodes. It stands in for a full CMS release in demos and tests.
func BuiltinCatalog() []Entry {
	out := make([]Entry, len(builtinCatalog))
	copy(out, builtinCatalog)
	return out
}

var builtinCatalog = []Entry{
	{Code: "A099", Billable: true, LongDesc: "Infectious gastroenteritis and colitis, unspecified"},
	{Code: "A41", Billable: false, LongDesc: "Other sepsis"},
	{Code: "A419", Billable: true, LongDesc: "Sepsis, unspecified organism"},
	{Code: "B181", Billable: true, LongDesc: "Chronic viral hepatitis B without delta-agent"},
	{Code: "B20", Billable: true, LongDesc: "Human immunodeficiency virus [HIV] disease"},
	{Code: "C189", Billable: true, LongDesc: "Malignant neoplasm of colon, unspecified"},
	{Code: "C3490", Billable: true, LongDesc: "Malignant neoplasm of unspecified part of unspecified bronchus or lung"},
	{Code: "C4A9", Billable: true, LongDesc: "Merkel cell carcinoma, unspecified"},
	{Code: "C50911", Billable: true, LongDesc: "Malignant neoplasm of unspecified site of right female breast"},
	{Code: "C61", Billable: true, LongDesc: "Malignant neoplasm of prostate"},
	{Code: "D509", Billable: true, LongDesc: "Iron deficiency anemia, unspecified"},
	{Code: "D649", Billable: true, LongDesc: "Anemia, unspecified"},
	{Code: "D696", Billable: true, LongDesc: "Thrombocytopenia, unspecified"},
	{Code: "E039", Billable: true, LongDesc: "Hypothyroidism, unspecified"},
	{Code: "E109", Billable: true, LongDesc: "Type 1 diabetes mellitus without complications"},
	{Code: "E11", Billable: false, LongDesc: "Type 2 diabetes mellitus"},
	{Code: "E115", Billable: false, LongDesc: "Type 2 diabetes mellitus with circulatory complications"},
	{Code: "E119", Billable: true, LongDesc: "Type 2 diabetes mellitus without complications"},
	{Code: "E1122", Billable: true, LongDesc: "Type 2 diabetes mellitus with diabetic chronic kidney disease"},
	{Code: "E1152", Billable: true, LongDesc: "Type 2 diabetes mellitus with diabetic peripheral angiopathy with gangrene"},
	{Code: "E1165", Billable: true, LongDesc: "Type 2 diabetes mellitus with hyperglycemia"},
	{Code: "E669", Billable: true, LongDesc: "Obesity, unspecified"},
	{Code: "E785", Billable: true, LongDesc: "Hyperlipidemia, unspecified"},
	{Code: "E860", Billable: true, LongDesc: "Dehydration"},
	{Code: "F1010", Billable: true, LongDesc: "Alcohol abuse, uncomplicated"},
	{Code: "F329", Billable: true, LongDesc: "Major depressive disorder, single episode, unspecified"},
	{Code: "F331", Billable: true, LongDesc: "Major depressive disorder, recurrent, moderate"},
	{Code: "F411", Billable: true, LongDesc: "Generalized anxiety disorder"},
	{Code: "F419", Billable: true, LongDesc: "Anxiety disorder, unspecified"},
	{Code: "G309", Billable: true, LongDesc: "Alzheimer's disease, unspecified"},
	{Code: "G40909", Billable: true, LongDesc: "Epilepsy, unspecified, not intractable, without status epilepticus"},
	{Code: "G43909", Billable: true, LongDesc: "Migraine, unspecified, not intractable, without status migrainosus"},
	{Code: "G4733", Billable: true, LongDesc: "Obstructive sleep apnea (adult) (pediatric)"},
	{Code: "H109", Billable: true, LongDesc: "Unspecified conjunctivitis"},
	{Code: "H259", Billable: true, LongDesc: "Unspecified age-related cataract"},
	{Code: "H6690", Billable: true, LongDesc: "Otitis media, unspecified, unspecified ear"},
	{Code: "H9190", Billable: true, LongDesc: "Unspecified hearing loss, unspecified ear"},
	{Code: "I10", Billable: true, LongDesc: "Essential (primary) hypertension"},
	{Code: "I119", Billable: true, LongDesc: "Hypertensive heart disease without heart failure"},
	{Code: "I219", Billable: true, LongDesc: "Acute myocardial infarction, unspecified"},
	{Code: "I2510", Billable: true, LongDesc: "Atherosclerotic heart disease of native coronary artery without angina pectoris"},
	{Code: "I4891", Billable: true, LongDesc: "Unspecified atrial fibrillation"},
	{Code: "I509", Billable: true, LongDesc: "Heart failure, unspecified"},
	{Code: "I639", Billable: true, LongDesc: "Cerebral infarction, unspecified"},
	{Code: "I739", Billable: true, LongDesc: "Peripheral vascular disease, unspecified"},
	{Code: "J069", Billable: true, LongDesc: "Acute upper respiratory infection, unspecified"},
	{Code: "J189", Billable: true, LongDesc: "Pneumonia, unspecified organism"},
	{Code: "J209", Billable: true, LongDesc: "Acute bronchitis, unspecified"},
	{Code: "J449", Billable: true, LongDesc: "Chronic obstructive pulmonary disease, unspecified"},
	{Code: "J45", Billable: false, LongDesc: "Asthma"},
	{Code: "J45909", Billable: true, LongDesc: "Unspecified asthma, uncomplicated"},
	{Code: "K219", Billable: true, LongDesc: "Gastro-esophageal reflux disease without esophagitis"},
	{Code: "K2970", Billable: true, LongDesc: "Gastritis, unspecified, without bleeding"},
	{Code: "K3580", Billable: true, LongDesc: "Unspecified acute appendicitis"},
	{Code: "K5900", Billable: true, LongDesc: "Constipation, unspecified"},
	{Code: "L0390", Billable: true, LongDesc: "Cellulitis, unspecified"},
	{Code: "L209", Billable: true, LongDesc: "Atopic dermatitis, unspecified"},
	{Code: "M179", Billable: true, LongDesc: "Osteoarthritis of knee, unspecified"},
	{Code: "M2550", Billable: true, LongDesc: "Pain in unspecified joint"},
	{Code: "M54", Billable: false, LongDesc: "Dorsalgia"},
	{Code: "M5450", Billable: true, LongDesc: "Low back pain, unspecified"},
	{Code: "M549", Billable: true, LongDesc: "Dorsalgia, unspecified"},
	{Code: "M810", Billable: true, LongDesc: "Age-related osteoporosis without current pathological fracture"},
	{Code: "N179", Billable: true, LongDesc: "Acute kidney failure, unspecified"},
	{Code: "N18", Billable: false, LongDesc: "Chronic kidney disease (CKD)"},
	{Code: "N184", Billable: true, LongDesc: "Chronic kidney disease, stage 4 (severe)"},
	{Code: "N189", Billable: true, LongDesc: "Chronic kidney disease, unspecified"},
	{Code: "N390", Billable: true, LongDesc: "Urinary tract infection, site not specified"},
	{Code: "N400", Billable: true, LongDesc: "Benign prostatic hyperplasia without lower urinary tract symptoms"},
	{Code: "O211", Billable: true, LongDesc: "Hyperemesis gravidarum with metabolic disturbance"},
	{Code: "O80", Billable: true, LongDesc: "Encounter for full-term uncomplicated delivery"},
	{Code: "P599", Billable: true, LongDesc: "Neonatal jaundice, unspecified"},
	{Code: "Q249", Billable: true, LongDesc: "Congenital malformation of heart, unspecified"},
	{Code: "R079", Billable: true, LongDesc: "Chest pain, unspecified"},
	{Code: "R1110", Billable: true, LongDesc: "Vomiting, unspecified"},
	{Code: "R42", Billable: true, LongDesc: "Dizziness and giddiness"},
	{Code: "R509", Billable: true, LongDesc: "Fever, unspecified"},
	{Code: "R519", Billable: true, LongDesc: "Headache, unspecified"},
	{Code: "R739", Billable: true, LongDesc: "Hyperglycemia, unspecified"},
	{Code: "S52501A", Billable: true, LongDesc: "Unspecified fracture of the lower end of right radius, initial encounter for closed fracture"},
	{Code: "S72", Billable: false, LongDesc: "Fracture of femur"},
	{Code: "S72001A", Billable: true, LongDesc: "Fracture of unspecified part of neck of right femur, initial encounter for closed fracture"},
	{Code: "T784XXA", Billable: true, LongDesc: "Allergy, unspecified, initial encounter"},
	{Code: "W19XXXA", Billable: true, LongDesc: "Unspecified fall, initial encounter"},
	{Code: "Z0000", Billable: true, LongDesc: "Encounter for general adult medical examination without abnormal findings"},
	{Code: "Z23", Billable: true, LongDesc: "Encounter for immunization"},
	{Code: "Z794", Billable: true, LongDesc: "Long term (current) use of insulin"},
	{Code: "U071", Billable: true, LongDesc: "COVID-19"},
	{Code: "U099", Billable: true, LongDesc: "Post COVID-19 condition, unspecified"},
}
