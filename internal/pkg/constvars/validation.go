package constvars

const (
	SchemaGermline    = "CQGC_Germline"
	SchemaTumorExome  = "CQGC_Exome_Tumeur_Seul"
	PanelCodeTumor    = "EXTUM"
	OrganizationLDM   = "LDM"
	SampleTypeDNA     = "DNA"
	SpecimenNBL       = "NBL"
	SpecimenTumor     = "TUMOR"
	FamilyProband     = "PROBAND"
	FamilyMother      = "MTH"
	FamilyFather      = "FTH"
	FamilySister      = "SIS"
	FamilyBrother     = "BRO"
	FetusNull         = "null"
	SexFemale         = "female"
	SexMale           = "male"
	SexUnknown        = "unknown"
	StatusAffected    = "AFF"
	StatusUnaffected  = "UNF"
	StatusUnknown     = "UNK"
	DateFormatDMY     = "dd/MM/yyyy"
	DateFormatISO     = "yyyy-MM-dd"
	DateFormatRAMQ    = "yyMMdd"
	VCFHeaderChrom    = "#CHROM"
	VCFHeaderFixed    = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t"
	VCFFixedColumns   = 9
	VCFSuffixGermline = ".hard-filtered.formatted.norm.vep.vcf.gz"
	VCFSuffixTumor    = ".dragen.wes_somatic-tumor_only.hard-filtered.norm.vep.vcf.gz"
)

const (
	FileCRAM                = "cram"
	FileCRAI                = "crai"
	FileSNVVCF              = "snv_vcf"
	FileSNVTBI              = "snv_tbi"
	FileCNVVCF              = "cnv_vcf"
	FileCNVTBI              = "cnv_tbi"
	FileSVVCF               = "sv_vcf"
	FileSVTBI               = "sv_tbi"
	FileSupplement          = "supplement"
	FileExomiserHTML        = "exomiser_html"
	FileExomiserJSON        = "exomiser_json"
	FileExomiserVariantsTSV = "exomiser_variants_tsv"
	FileSegBW               = "seg_bw"
	FileHardFilteredBafBW   = "hard_filtered_baf_bw"
	FileRohBED              = "roh_bed"
	FileHyperExomeBED       = "hyper_exome_hg38_bed"
	FileCNVCallsPNG         = "cnv_calls_png"
	FileCoverageByGeneCSV   = "coverage_by_gene_csv"
	FileQCMetrics           = "qc_metrics"
)

var (
	SupportedSchemas       = []string{SchemaGermline, SchemaTumorExome}
	SampleTypes            = []string{SampleTypeDNA}
	SpecimenTypes          = []string{SpecimenNBL, SpecimenTumor}
	FamilyMembers          = []string{FamilyProband, FamilyMother, FamilyFather, FamilySister, FamilyBrother}
	FetusValues            = []string{"false", FetusNull}
	SexValues              = []string{SexFemale, SexMale, SexUnknown}
	PatientStatuses        = []string{StatusAffected, StatusUnaffected, StatusUnknown}
	DefaultWorkflowVersion = []string{"3.8.4", "3.10.4", "4.2.4"}

	// SupportedFiles is ordered, reports walk declared files in this order.
	SupportedFiles = []string{
		FileCRAM, FileCRAI, FileSNVVCF, FileSNVTBI, FileCNVVCF, FileCNVTBI, FileSVVCF, FileSVTBI,
		FileSupplement, FileExomiserHTML, FileExomiserJSON, FileExomiserVariantsTSV, FileSegBW,
		FileHardFilteredBafBW, FileRohBED, FileHyperExomeBED, FileCNVCallsPNG, FileCoverageByGeneCSV,
		FileQCMetrics,
	}
	ExomiserFiles = []string{FileExomiserHTML, FileExomiserJSON, FileExomiserVariantsTSV}

	// Roles that may appear more than once in a family.
	RepeatableFamilyMembers = []string{FamilySister, FamilyBrother}
	ParentFamilyMembers     = []string{FamilyMother, FamilyFather}
)

// Java pattern shown to submitters, the Go equivalent is in NamePattern.
const (
	NamePatternDisplay = `^[a-zA-Z0-9- .'À-ÿ]*$`
	NamePattern        = `^[a-zA-Z0-9\- .'\x{00C0}-\x{00FF}]*$`
	RAMQPattern        = `^[A-Z]{4}\d{8,9}$`
	BatchIDPattern     = `^[a-zA-Z0-9._\-]+$`
)

// Report field paths and messages.
const (
	FieldMetadata          = "metadata"
	FieldAnalyses          = "analyses"
	FieldSubmissionSchema  = "submissionSchema"
	FieldFiles             = "files"
	FieldExperimentRunName = "Experiment.runName"
	FieldFamilyFormat      = "Family.%s"
	FieldAnalysisFormat    = "analyses[%d]"

	MsgIsMissing                = "is missing"
	MsgIsRequired               = "is required"
	MsgShouldBe                 = "should be %s"
	MsgValueShouldBe            = "'%s' should be %s"
	MsgShouldBeUnique           = "'%s' should be unique"
	MsgExistsInAnotherBatch     = "'%s' should be unique and exists in another batch: %s"
	MsgShouldBeTumorPanel       = "should be " + PanelCodeTumor + " for schema: " + SchemaTumorExome
	MsgShouldNotBeTumorPanel    = "shouldn't be " + PanelCodeTumor + " for schema: " + SchemaGermline
	MsgSpecimenForSchema        = "'%s' should be: %s for schema: %s"
	MsgDateFormat               = "'%s' should be formatted like: %s"
	MsgSpecialCharacters        = "'%s' should have length >= 2 and no special characters, cf. regex: " + NamePatternDisplay
	MsgInvalidRAMQ              = "'%s' should be a valid RAMQ number"
	MsgMismatchExisting         = "'%s' should be: %s"
	MsgMrnOrRamq                = "should have mrn or ramq or both"
	MsgRunNameSimilar           = "'%s' should be similar to batch_id: %s"
	MsgAtLeastOneValidRunName   = "should have at least one valid runName"
	MsgSupportedFiles           = "Supported files are: %s"
	MsgParentWithExomiser       = "familyMember other than PROBAND|SIS|BRO should not have exomiser files"
	MsgFamilySingleMember       = "should be without familyId or have more than one familyMember: %s"
	MsgFamilyDistinctMembers    = "should have distinct familyMembers: %s"
	MsgFamilyNeedsProband       = "should have at least one PROBAND: %s"
	MsgFilesAreMissing          = "Files are missing"
	MsgFileNotInMetadata        = "not in metadata"
	MsgAliquotMissingVCF        = "in metadata but VCF is missing"
	MsgAliquotNotInMetadata     = "not related with metadata but found in VCF: %s"
	MsgAliquotWithSeveralVCFs   = "has more than one VCF: %s"
	DateFormatSeparatorInReport = " or "
)
